package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"quiz:submit",
		"attempt:view-own",
		"user:change_password",
	},
	"teacher": {
		"quiz:view",
		"quiz:create",
		"quiz:edit",
		"quiz:delete",
		"quiz:generate",
		"attempt:view-all",
		"users:bulk_upsert",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
