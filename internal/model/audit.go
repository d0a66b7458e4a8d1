package model

import "time"

const (
	AuditStatusSuccess = "success"
	AuditStatusDenied  = "denied"
	AuditStatusFailed  = "failed"
)

const (
	ActionRegister       = "auth.register"
	ActionLogin          = "auth.login"
	ActionLogout         = "auth.logout"
	ActionPasswordChange = "user.password_change"
	ActionProfileUpdate  = "user.profile_update"
	ActionTopicCreate    = "topic.create"
	ActionTopicUpdate    = "topic.update"
	ActionTopicDelete    = "topic.delete"
	ActionPostCreate     = "post.create"
	ActionPostDelete     = "post.delete"
)

type AuditEntry struct {
	ID            int64     `json:"id"`
	Action        string    `json:"action"`
	ActorUsername string    `json:"actor_username,omitempty"`
	Resource      string    `json:"resource,omitempty"`
	Status        string    `json:"status"`
	ClientIP      string    `json:"client_ip,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type AuditQuery struct {
	ActorUsername string
	Page          int
	Limit         int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}

// AuditActor identifies who performed an audited action and from where.
type AuditActor struct {
	Username string
	IP       string
}
