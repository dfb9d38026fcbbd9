package transport

import (
    "context"
    "net/url"

    "initinere/internal/model"
)

func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResponse, error) {
    var out model.AuthResponse
    err := c.do(ctx, "POST", "/auth/login", model.Credentials{Email: email, Password: password}, &out, nil)
    return out, err
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (model.AuthResponse, error) {
    var out model.AuthResponse
    err := c.do(ctx, "POST", "/auth/register", reg, &out, nil)
    return out, err
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
    var out model.User
    err := c.do(ctx, "GET", "/users/me", nil, &out, nil)
    return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, u model.User) (model.User, error) {
    var out model.User
    err := c.do(ctx, "PUT", "/users/me", u, &out, nil)
    return out, err
}

func (c *Client) UpdateVehiclePreference(ctx context.Context, vehicleType string) error {
    q := url.Values{"vehicle_type": {vehicleType}}
    return c.do(ctx, "PUT", "/users/me/vehicle-preference?"+q.Encode(), nil, nil, nil)
}
