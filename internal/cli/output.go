package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AccountResult:
		o.printAccountResult(v)
	case AuthResult:
		o.printAuthResult(v)
	case ProfileResult:
		o.printProfileResult(v)
	case ResetResult:
		o.printResetResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AccountResult response type (matches API)
type AccountResult struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResult response type
type AuthResult struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ProfileResult response type
type ProfileResult struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"session_expires_at"`
}

// ResetResult response type
type ResetResult struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password,omitempty"`
	Delivery    string `json:"delivery"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccountResult(a AccountResult) {
	fmt.Printf("Account: %s (id %d)\n", a.Username, a.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Logged in as: %s\n", a.Username)
	fmt.Printf("Session expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printProfileResult(p ProfileResult) {
	fmt.Printf("Username: %s\n", p.Username)
	fmt.Printf("Session expires: %s\n", p.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printResetResult(r ResetResult) {
	fmt.Printf("Password reset for: %s\n", r.Username)
	if r.NewPassword != "" {
		fmt.Printf("New password: %s\n", r.NewPassword)
	} else {
		fmt.Printf("Delivery: %s\n", r.Delivery)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
