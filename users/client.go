// Package users is a typed read surface over the backend's /users
// endpoints. The session manager owns the write path; this client serves
// lookups and the paginated listing used by admin tooling.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/health-tracker-project/health-client/dispatch"
	"github.com/health-tracker-project/health-client/types"
)

// Client reads user records through the dispatcher.
type Client struct {
	dispatcher *dispatch.Dispatcher
}

// NewClient creates a user read client.
func NewClient(d *dispatch.Dispatcher) *Client {
	return &Client{dispatcher: d}
}

// GetByID fetches a user by numeric id.
func (c *Client) GetByID(ctx context.Context, id int64) (*types.User, *types.RequestError) {
	return c.get(ctx, fmt.Sprintf("/users/%d", id))
}

// GetByEmail fetches a user by email address.
func (c *Client) GetByEmail(ctx context.Context, email string) (*types.User, *types.RequestError) {
	return c.get(ctx, "/users/email/"+url.PathEscape(email))
}

// GetByUsername fetches a user by username.
func (c *Client) GetByUsername(ctx context.Context, username string) (*types.User, *types.RequestError) {
	return c.get(ctx, "/users/username/"+url.PathEscape(username))
}

func (c *Client) get(ctx context.Context, endpoint string) (*types.User, *types.RequestError) {
	outcome := c.dispatcher.Get(ctx, endpoint)
	if !outcome.Success {
		return nil, outcome.Error
	}

	var envelope types.UserResponse
	if err := outcome.Decode(&envelope); err != nil || envelope.Data.ID == 0 {
		var user types.User
		if err := outcome.Decode(&user); err != nil || user.ID == 0 {
			return nil, types.WrapRequestError(types.ErrorTypeHTTP, "unexpected user response", err)
		}
		return &user, nil
	}
	return &envelope.Data, nil
}

// ListParams filter and page the user listing.
type ListParams struct {
	Page     int
	Size     int
	IsActive *bool
	Search   string
	OrderBy  string
}

func (p ListParams) query() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*p.IsActive))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List fetches a page of users.
func (c *Client) List(ctx context.Context, params ListParams) (*types.UserListResponse, *types.RequestError) {
	outcome := c.dispatcher.Get(ctx, "/users/"+params.query())
	if !outcome.Success {
		return nil, outcome.Error
	}

	var listing types.UserListResponse
	if err := outcome.Decode(&listing); err != nil {
		return nil, types.WrapRequestError(types.ErrorTypeHTTP, "unexpected user listing response", err)
	}
	return &listing, nil
}
