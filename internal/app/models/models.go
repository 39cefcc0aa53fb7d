package models

import "github.com/google/uuid"

// RoleType defines the account role
type RoleType string

const (
	RoleStudent       RoleType = "STUDENT"
	RoleAdministrator RoleType = "ADMINISTRATOR"
)

// Media is an uploaded asset: the public URL plus the store-side id needed to delete it.
type Media struct {
	URL     string `json:"url" db:"url"`
	AssetID string `json:"assetId" db:"asset_id"`
}

// IsZero reports whether no asset is attached
func (m *Media) IsZero() bool {
	return m == nil || m.AssetID == ""
}

// AuthorProjection is the public slice of an account embedded into content.
type AuthorProjection struct {
	ID     uuid.UUID `json:"_id"`
	Handle string    `json:"usuario"`
	Avatar string    `json:"fotoPerfil"`
}

// containsID reports whether id is present in ids
func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
