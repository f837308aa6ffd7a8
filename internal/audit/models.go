package audit

import (
	"time"

	"github.com/mssola/useragent"
)

// Action names an audited credential lifecycle step.
type Action string

const (
	ActionAccountRegistered Action = "account_registered"
	ActionLoginSucceeded    Action = "login_succeeded"
	ActionLoginFailed       Action = "login_failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	AccountID string    `json:"account_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	// Reason is only set on failures and never leaves the audit stream.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile,omitempty"`
	Bot       bool   `json:"bot,omitempty"`
}

// WithClient records the caller address and the parsed User-Agent.
func (e Event) WithClient(clientIP, userAgent string) Event {
	e.ClientIP = clientIP
	e.UserAgent = userAgent
	if userAgent == "" {
		return e
	}
	ua := useragent.New(userAgent)
	if name, version := ua.Browser(); name != "" {
		e.Browser = name
		if version != "" {
			e.Browser += " " + version
		}
	}
	e.OS = ua.OS()
	e.Mobile = ua.Mobile()
	e.Bot = ua.Bot()
	return e
}
