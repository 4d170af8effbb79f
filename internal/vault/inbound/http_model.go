package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/seedvault/internal/vault/entity"
)

type SecretResponse struct {
	ID        string    `json:"id"`
	Issuer    string    `json:"issuer"`
	Account   string    `json:"account"`
	Type      string    `json:"type"`
	Algorithm string    `json:"algorithm"`
	Digits    int       `json:"digits"`
	Period    uint      `json:"period,omitempty"`
	Counter   uint64    `json:"counter,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seeds never leave the vault through listing or detail responses; export is
// the only way to read them back.
func toSecretResponse(sec entity.Secret) SecretResponse {
	return SecretResponse{
		ID:        formatID(sec.ID),
		Issuer:    sec.Issuer,
		Account:   sec.Account,
		Type:      sec.Type,
		Algorithm: sec.Algorithm,
		Digits:    sec.Digits,
		Period:    sec.Period,
		Counter:   sec.Counter,
		CreatedAt: sec.CreatedAt,
		UpdatedAt: sec.UpdatedAt,
	}
}

type ListResponse struct {
	Secrets []SecretResponse `json:"secrets"`
}

func (r ListResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Secrets)}
}

type CreatedResponse struct {
	SecretResponse
}

func (CreatedResponse) StatusCode() int { return http.StatusCreated }

func (CreatedResponse) Message() string { return "Secret created" }

type CreateRequest struct {
	Issuer    string `json:"issuer"`
	Account   string `json:"account"`
	Seed      string `json:"seed"`
	Type      string `json:"type"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Period    uint   `json:"period"`
	Counter   uint64 `json:"counter"`
}

type UpdateRequest struct {
	Issuer  *string `json:"issuer"`
	Account *string `json:"account"`
	Counter *uint64 `json:"counter"`
}

type DeletedResponse struct{}

func (DeletedResponse) Message() string { return "Secret deleted" }

type CodeResponse struct {
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
	Counter   uint64 `json:"counter,omitempty"`
}

type ExportResponse struct {
	URIs []string `json:"uris"`
}

func (r ExportResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.URIs)}
}

type ImportEntryRequest struct {
	Issuer   string `json:"issuer"`
	Account  string `json:"account"`
	Secret   string `json:"secret"`
	Encoding string `json:"encoding"`
}

type ImportRequest struct {
	URIs    []string             `json:"uris"`
	Entries []ImportEntryRequest `json:"entries"`
}

type ImportResponse struct {
	Imported []SecretResponse       `json:"imported"`
	Skipped  int                    `json:"skipped"`
	Failures []entity.ImportFailure `json:"failures"`
}

func (ImportResponse) Message() string { return "Import finished" }

type BackupResponse struct {
	entity.Backup
}

func (BackupResponse) StatusCode() int { return http.StatusCreated }

func (BackupResponse) Message() string { return "Backup uploaded" }

type BackupListResponse struct {
	Backups []entity.Backup `json:"backups"`
}

type RestoreRequest struct {
	Key string `json:"key"`
}

type RestoreResponse struct {
	Count int `json:"count"`
}

func (RestoreResponse) Message() string { return "Backup restored" }

type MigrateResponse struct {
	Migrated bool `json:"migrated"`
	Count    int  `json:"count"`
}
