package domain

import "fmt"

// MerchantInfo links a merchant account to its store.
type MerchantInfo struct {
	StoreID   string `json:"storeId,omitempty"`
	StoreName string `json:"storeName,omitempty"`
}

// User models the authenticated console operator.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Active       bool          `json:"active"`
	MerchantInfo *MerchantInfo `json:"merchantInfo,omitempty"`
}

// Validate checks the invariants a session relies on: a known role, and
// merchant info only on merchant accounts. A merchant without merchant info
// has no store provisioned yet.
func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("user: missing")
	}
	if u.ID == "" {
		return fmt.Errorf("user: missing id")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("user %s: unknown role %q", u.ID, u.Role)
	}
	if u.Role != RoleMerchant && u.MerchantInfo != nil {
		return fmt.Errorf("user %s: merchant info on %s account", u.ID, u.Role)
	}
	return nil
}

// StoreID returns the merchant's store id, or "" when none is provisioned.
func (u *User) StoreID() string {
	if u == nil || u.MerchantInfo == nil {
		return ""
	}
	return u.MerchantInfo.StoreID
}

// Clone returns a deep copy so snapshots never alias session-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.MerchantInfo != nil {
		mi := *u.MerchantInfo
		c.MerchantInfo = &mi
	}
	return &c
}
