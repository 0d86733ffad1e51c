package domain

import "time"

// Customer roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Customer account status
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Customer is a storefront account. Admin operators are customers with
// role=admin; registration always creates role=customer.
type Customer struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `json:"name" form:"name"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Phone     string    `json:"phone" form:"phone"`
	Password  string    `gorm:"size:255" json:"-"`
	Role      string    `gorm:"size:32;default:customer" json:"role"`
	Status    string    `gorm:"size:32;default:active" json:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "customers"
}

// CustomerAddress shipping address belonging to a customer
type CustomerAddress struct {
	ID          int64     `json:"id,string" form:"id"`
	CustomerId  int64     `gorm:"index" json:"customer_id,string" form:"customer_id"`
	FullAddress string    `json:"full_address" form:"full_address"`
	City        string    `json:"city" form:"city"`
	State       string    `json:"state" form:"state"`
	Pincode     string    `json:"pincode" form:"pincode"`
	Country     string    `json:"country" form:"country"`
	IsDefault   bool      `json:"is_default" form:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CustomerAddress) TableName() string {
	return "customer_addresses"
}
