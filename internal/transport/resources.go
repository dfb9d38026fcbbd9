package transport

import (
    "context"
    "strconv"

    "initinere/internal/model"
)

// Vehicles

func (c *Client) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
    var out []model.Vehicle
    err := c.do(ctx, "GET", "/vehicles", nil, &out, nil)
    return out, err
}

func (c *Client) CreateVehicle(ctx context.Context, v model.Vehicle) (model.Vehicle, error) {
    var out model.Vehicle
    err := c.do(ctx, "POST", "/vehicles", v, &out, nil)
    return out, err
}

func (c *Client) DeactivateVehicle(ctx context.Context, id string) error {
    return c.do(ctx, "PUT", "/vehicles/"+id+"/deactivate", nil, nil, nil)
}

// Safety checks

func (c *Client) CreateSafetyCheck(ctx context.Context, sc model.SafetyCheck) (model.SafetyCheck, error) {
    var out model.SafetyCheck
    err := c.do(ctx, "POST", "/safety-checks", sc, &out, nil)
    return out, err
}

func (c *Client) CurrentSafetyCheck(ctx context.Context) (model.SafetyCheck, error) {
    var out model.SafetyCheck
    err := c.do(ctx, "GET", "/safety-checks/current", nil, &out, nil)
    return out, err
}

func (c *Client) UpdateSafetyCheckItems(ctx context.Context, id string, items []model.SafetyCheckItem) (model.SafetyCheck, error) {
    var out model.SafetyCheck
    err := c.do(ctx, "PUT", "/safety-checks/"+id+"/update-items", map[string]any{"items": items}, &out, nil)
    return out, err
}

func (c *Client) ApproveSafetyCheck(ctx context.Context, id string) (model.SafetyCheck, error) {
    var out model.SafetyCheck
    err := c.do(ctx, "POST", "/safety-checks/"+id+"/approve", nil, &out, nil)
    return out, err
}

func (c *Client) GetSafetyCheck(ctx context.Context, id string) (model.SafetyCheck, error) {
    var out model.SafetyCheck
    err := c.do(ctx, "GET", "/safety-checks/"+id, nil, &out, nil)
    return out, err
}

// Emergencies

// ReportEmergency signs the body with the device secret when configured so
// the server can verify an SOS actually came from the enrolled device.
func (c *Client) ReportEmergency(ctx context.Context, rep model.EmergencyReport) (model.Emergency, error) {
    var out model.Emergency
    err := c.do(ctx, "POST", "/emergencies", rep, &out, &callOpts{sign: true})
    return out, err
}

// ListEmergencies returns the user's emergencies, newest first. limit <= 0
// keeps the server default.
func (c *Client) ListEmergencies(ctx context.Context, limit int) ([]model.Emergency, error) {
    path := "/emergencies"
    if limit > 0 {
        path += "?limit=" + strconv.Itoa(limit)
    }
    var out []model.Emergency
    err := c.do(ctx, "GET", path, nil, &out, nil)
    return out, err
}

func (c *Client) GetEmergency(ctx context.Context, id string) (model.Emergency, error) {
    var out model.Emergency
    err := c.do(ctx, "GET", "/emergencies/"+id, nil, &out, nil)
    return out, err
}

func (c *Client) EmergencyContacts(ctx context.Context) ([]model.EmergencyContact, error) {
    var out []model.EmergencyContact
    err := c.do(ctx, "GET", "/emergencies/emergency-contacts", nil, &out, nil)
    return out, err
}

func (c *Client) ResolveEmergency(ctx context.Context, id, note string) (model.Emergency, error) {
    var out model.Emergency
    err := c.do(ctx, "PUT", "/emergencies/"+id+"/resolve", map[string]string{"note": note}, &out, nil)
    return out, err
}

// Dashboard

func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
    var out model.DashboardStats
    err := c.do(ctx, "GET", "/dashboard", nil, &out, nil)
    return out, err
}

func (c *Client) WeeklyStats(ctx context.Context) ([]model.DayStats, error) {
    var out []model.DayStats
    err := c.do(ctx, "GET", "/dashboard/weekly-stats", nil, &out, nil)
    return out, err
}

func (c *Client) MonthlySummary(ctx context.Context) (model.MonthlySummary, error) {
    var out model.MonthlySummary
    err := c.do(ctx, "GET", "/dashboard/monthly-summary", nil, &out, nil)
    return out, err
}
