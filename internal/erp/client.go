// Package erp pulls stock figures from an Odoo-compatible ERP over
// XML-RPC. The sync is optional: without ERP credentials the catalog
// runs on imported spreadsheets alone.
package erp

import (
	"fmt"

	"github.com/kolo/xmlrpc"

	"github.com/painelsoft/mdfcopilot/internal/config"
)

// Client talks to the ERP's external XML-RPC API.
type Client struct {
	url      string
	database string
	username string
	password string
	uid      int64

	common *xmlrpc.Client
	object *xmlrpc.Client
}

// NewClient prepares the RPC endpoints. Call Authenticate before any
// query.
func NewClient(cfg config.ERPConfig) (*Client, error) {
	common, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/common", nil)
	if err != nil {
		return nil, fmt.Errorf("create common endpoint: %w", err)
	}
	object, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/object", nil)
	if err != nil {
		return nil, fmt.Errorf("create object endpoint: %w", err)
	}
	return &Client{
		url:      cfg.URL,
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		common:   common,
		object:   object,
	}, nil
}

// Authenticate logs in and stores the user id used by later calls.
func (c *Client) Authenticate() error {
	var uid int64
	err := c.common.Call("authenticate", []any{
		c.database, c.username, c.password, map[string]any{},
	}, &uid)
	if err != nil {
		return fmt.Errorf("erp authenticate: %w", err)
	}
	if uid == 0 {
		return fmt.Errorf("erp rejected credentials for %s", c.username)
	}
	c.uid = uid
	return nil
}

// SearchRead runs a search_read on a model.
func (c *Client) SearchRead(model string, domain []any, fields []string, out any) error {
	err := c.object.Call("execute_kw", []any{
		c.database, c.uid, c.password,
		model, "search_read",
		[]any{domain},
		map[string]any{"fields": fields},
	}, out)
	if err != nil {
		return fmt.Errorf("erp search_read %s: %w", model, err)
	}
	return nil
}
