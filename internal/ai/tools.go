package ai

import "github.com/google/generative-ai-go/genai"

// Definition describes one tool exposed to the model.
type Definition struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// Definitions returns the copilot's tool surface. Names, parameters
// and defaults are part of the wire contract with the prompts.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        "search_product",
			Description: "Busca produtos MDF no catalogo por nome, marca ou codigo. Aceita nome parcial e espessura (ex: 'Carvalho Hanover 15mm').",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Nome, marca ou codigo do produto"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "check_stock",
			Description: "Consulta o estoque de um produto na loja principal e, opcionalmente, nas demais filiais.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id":              {Type: genai.TypeInteger, Description: "ID do produto"},
					"include_other_locations": {Type: genai.TypeBoolean, Description: "Incluir estoque das outras filiais"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "find_direct_equivalents",
			Description: "Lista os equivalentes diretos curados de um produto (tabela de similaridade), com estoque.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id":             {Type: genai.TypeInteger, Description: "ID do produto original"},
					"require_same_thickness": {Type: genai.TypeBoolean, Description: "Exigir a mesma espessura (padrao: true)"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "find_smart_alternatives",
			Description: "Sugere alternativas visualmente similares quando nao ha equivalente direto, com score e justificativa.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id":  {Type: genai.TypeInteger, Description: "ID do produto original"},
					"max_results": {Type: genai.TypeInteger, Description: "Quantidade maxima de sugestoes (padrao: 3)"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "search_web_mdf",
			Description: "Pesquisa na web por equivalencias de um padrao MDF (util para produtos descontinuados) e cruza os nomes encontrados com o catalogo.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_name": {Type: genai.TypeString, Description: "Nome do padrao a pesquisar"},
					"brand":        {Type: genai.TypeString, Description: "Marca do produto (opcional)"},
				},
				Required: []string{"product_name"},
			},
		},
		{
			Name:        "find_compatible_edging_tape",
			Description: "Encontra fitas de borda compativeis com um produto, com metragem e rolos disponiveis.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeInteger, Description: "ID do produto"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "register_feedback",
			Description: "Registra se o vendedor aceitou ou recusou uma sugestao de substituicao.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"original_product_id":  {Type: genai.TypeInteger, Description: "ID do produto original"},
					"suggested_product_id": {Type: genai.TypeInteger, Description: "ID do produto sugerido"},
					"accepted":             {Type: genai.TypeBoolean, Description: "Sugestao aceita?"},
					"suggestion_type": {
						Type:        genai.TypeString,
						Description: "Tipo da sugestao (padrao: direct_equivalence)",
						Enum:        []string{"direct_equivalence", "visual_similarity", "smart_alternative"},
					},
					"rating":  {Type: genai.TypeInteger, Description: "Nota de 1 a 5 (opcional)"},
					"comment": {Type: genai.TypeString, Description: "Comentario livre (opcional)"},
				},
				Required: []string{"original_product_id", "suggested_product_id", "accepted"},
			},
		},
		{
			Name:        "generate_client_text",
			Description: "Gera um texto pronto para enviar ao cliente explicando a substituicao sugerida.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"original_product_id":  {Type: genai.TypeInteger, Description: "ID do produto original"},
					"suggested_product_id": {Type: genai.TypeInteger, Description: "ID do produto sugerido"},
					"suggestion_type": {
						Type:        genai.TypeString,
						Description: "Tipo da sugestao",
						Enum:        []string{"direct_equivalence", "visual_similarity", "smart_alternative"},
					},
				},
				Required: []string{"original_product_id", "suggested_product_id", "suggestion_type"},
			},
		},
		{
			Name:        "search_by_image",
			Description: "Compara a foto enviada pelo vendedor com as imagens cadastradas dos produtos e retorna os visualmente mais parecidos.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"max_results": {Type: genai.TypeInteger, Description: "Quantidade maxima de resultados (padrao: 5)"},
				},
			},
		},
	}
}
