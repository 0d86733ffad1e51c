package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	// Accounts
	&Customer{},
	&CustomerAddress{},
	// Catalog
	&Category{},
	&Product{},
	&ProductImage{},
	&ProductVariant{},
	// Orders
	&Order{},
	&OrderItem{},
}
