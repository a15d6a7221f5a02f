package models

// User is the identity returned by /login and /user.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CanCreate bool   `json:"create"`
	CanRead   bool   `json:"read"`
	CanWrite  bool   `json:"write"`
}

func (u User) IsAdmin() bool { return u.Role == "ROLE_ADMIN" || u.Role == "ADMIN" }

// StorageInfo is the caller's quota usage.
type StorageInfo struct {
	Used               int64   `json:"storageUsed"`
	Quota              int64   `json:"storageQuota"`
	Remaining          int64   `json:"storageRemaining"`
	UsedFormatted      string  `json:"storageUsedFormatted"`
	QuotaFormatted     string  `json:"storageQuotaFormatted"`
	RemainingFormatted string  `json:"storageRemainingFormatted"`
	UsagePercentage    Percent `json:"usagePercentage"`
}

// Percent accepts a JSON number or a numeric string such as "12.50".
type Percent float64
