package marketplace

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
)

// Client talks XML-RPC to the external ERP marketplace.
type Client struct {
	URL        string
	Database   string
	Username   string
	Password   string
	Uid        int
	CommonURL  string
	ObjectURL  string
	HttpClient *http.Client
}

// NewClient creates a marketplace client
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:        url,
		Database:   db,
		Username:   username,
		Password:   password,
		CommonURL:  fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL:  fmt.Sprintf("%s/xmlrpc/2/object", url),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate authenticates with the marketplace and returns the user ID
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}

	c.Uid = uid
	return uid, nil
}

// Create inserts a record on a marketplace model and returns the remote id.
func (c *Client) Create(model string, values map[string]interface{}) (int64, error) {
	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{
		c.Database,
		c.Uid,
		c.Password,
		model,
		"create",
		[]interface{}{values},
	}

	var id int64
	if err := client.Call("execute_kw", args, &id); err != nil {
		return 0, fmt.Errorf("failed to execute create: %w", err)
	}
	return id, nil
}

// Version checks connectivity and returns the remote server version string.
func (c *Client) Version() (string, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	var info map[string]interface{}
	if err := client.Call("version", nil, &info); err != nil {
		return "", fmt.Errorf("version check failed: %w", err)
	}
	if v, ok := info["server_version"].(string); ok {
		return v, nil
	}
	return "unknown", nil
}
