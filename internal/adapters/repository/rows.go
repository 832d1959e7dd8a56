package repository

import (
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/okian/leadsplit/internal/domain/model"
)

const (
	tableAgents        = "agents"
	tableListItems     = "list_items"
	tableUsers         = "users"
	tableVerifications = "email_verifications"
)

// agentRow mirrors the agents table minus its seq column.
type agentRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Mobile       string `db:"mobile"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

var agentStruct = sqlbuilder.NewStruct(new(agentRow)).For(flavor)

func fromAgent(a model.Agent) agentRow {
	return agentRow{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Mobile:       a.Mobile,
		PasswordHash: a.PasswordHash,
		CreatedAt:    toUnix(a.CreatedAt),
	}
}

func (r agentRow) to() model.Agent {
	return model.Agent{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Mobile:       r.Mobile,
		PasswordHash: r.PasswordHash,
		CreatedAt:    fromUnix(r.CreatedAt),
	}
}

// itemColumns are the writable columns of list_items, in insert order.
var itemColumns = []string{"first_name", "phone", "notes", "assigned_to", "created_at"}

// distributionRow is one joined agent/item pair.
type distributionRow struct {
	AgentID      string `db:"agent_id"`
	AgentName    string `db:"agent_name"`
	AgentEmail   string `db:"agent_email"`
	AgentMobile  string `db:"agent_mobile"`
	AgentCreated int64  `db:"agent_created_at"`
	FirstName    string `db:"first_name"`
	Phone        string `db:"phone"`
	Notes        string `db:"notes"`
}

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    int64  `db:"created_at"`
}

var userStruct = sqlbuilder.NewStruct(new(userRow)).For(flavor)

func fromUser(u model.User) userRow {
	return userRow{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role, CreatedAt: toUnix(u.CreatedAt)}
}

func (r userRow) to() model.User {
	return model.User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, Role: r.Role, CreatedAt: fromUnix(r.CreatedAt)}
}

type verificationRow struct {
	Email     string `db:"email"`
	OTP       string `db:"otp"`
	Verified  bool   `db:"verified"`
	CreatedAt int64  `db:"created_at"`
}

var verificationStruct = sqlbuilder.NewStruct(new(verificationRow)).For(flavor)

func fromVerification(v model.EmailVerification) verificationRow {
	return verificationRow{Email: v.Email, OTP: v.OTP, Verified: v.Verified, CreatedAt: toUnix(v.CreatedAt)}
}

func (r verificationRow) to() model.EmailVerification {
	return model.EmailVerification{Email: r.Email, OTP: r.OTP, Verified: r.Verified, CreatedAt: fromUnix(r.CreatedAt)}
}

// Timestamps are stored as Unix nanoseconds so ordering is numeric.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
