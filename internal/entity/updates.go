package entity

// UserUpdates holds the mutable user fields.
type UserUpdates struct {
	FirstName *string
	LastName  *string
	Role      *string
	Password  *string
	IsActive  *bool
}

// ToMap converts to a GORM update map.
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.FirstName != nil {
		updates["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		updates["last_name"] = *u.LastName
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Password != nil {
		updates["password"] = *u.Password
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ChatUpdates holds the mutable chat fields.
type ChatUpdates struct {
	Title *string
}

// ToMap converts to a GORM update map.
func (u ChatUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u ChatUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
