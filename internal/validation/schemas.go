package validation

import "example.com/storefront/internal/model"

var (
	Product = Object(
		Required("name", String(MinLength(3), MaxLength(100))),
		Optional("description", String(MaxLength(500))),
		Required("price", Number(Min(0), Precision(2))),
		Required("stock_quantity", Number(Integer(), Min(0))),
		Optional("is_active", Bool()),
	)

	OrderRequest = Object(
		Required("items", Array(1, Object(
			Required("product_id", String(UUID())),
			Required("quantity", Number(Integer(), Min(1))),
		))),
	)

	StatusUpdate = Object(
		Required("status", String(OneOf(model.OrderStatuses...))),
	)

	RoleUpdate = Object(
		Required("role", String(OneOf(model.Roles...))),
	)

	Register = Object(
		Required("email", String(Email())),
		Required("password", String(MinLength(6), MaxBytes(72))),
		Required("full_name", String(MaxLength(100))),
	)

	// AdminRegister lets an admin pick the new account's role up front.
	AdminRegister = Object(
		Required("email", String(Email())),
		Required("password", String(MinLength(6), MaxBytes(72))),
		Required("full_name", String(MaxLength(100))),
		Optional("role", String(OneOf(model.Roles...))),
	)

	Login = Object(
		Required("email", String()),
		Required("password", String()),
	)
)
