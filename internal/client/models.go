// ABOUTME: Request and response types for the inventory API
// ABOUTME: Devices, users, catalog entries, and the login contract

package client

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser is the identity descriptor returned alongside the token
type LoginUser struct {
	Username string `json:"username"`
	UserType string `json:"userType"`
}

// LoginResponse represents the result of a successful login
type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// CatalogItem is one entry of a reference list (locations, statuses, brands, models)
type CatalogItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is a candidate returned by the user search endpoints
type User struct {
	ID       int          `json:"id"`
	Email    string       `json:"email"`
	Name     string       `json:"name,omitempty"`
	Location *CatalogItem `json:"location,omitempty"`
}

// Device is a managed record as listed by the backend, with display names
type Device struct {
	ID            int     `json:"id"`
	Code          string  `json:"code"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Serial        string  `json:"serial"`
	Specification string  `json:"specification"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Location      string  `json:"location"`
	UserID        int     `json:"userId,omitempty"`
	UserEmail     string  `json:"userEmail"`
	Price         float64 `json:"price"`
	Note          string  `json:"note,omitempty"`
}

// Ref points at a catalog or user record by identifier
type Ref struct {
	ID int `json:"id"`
}

// DevicePayload is the create/update body; every foreign key is a Ref
type DevicePayload struct {
	Code          string  `json:"code"`
	Brand         Ref     `json:"brand"`
	Model         Ref     `json:"model"`
	Serial        string  `json:"serial"`
	Specification string  `json:"specification"`
	Type          string  `json:"type"`
	Status        Ref     `json:"status"`
	Location      Ref     `json:"location"`
	User          Ref     `json:"user"`
	Price         float64 `json:"price"`
	Note          string  `json:"note"`
}
