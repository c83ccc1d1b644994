package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleMember, PermissionCreateRequest))
	assert.True(t, HasPermission(RoleMember, PermissionCreateGroup))
	assert.False(t, HasPermission(RoleMember, PermissionReplayOutbox))
	assert.False(t, HasPermission(RoleMember, PermissionRunIntake))

	assert.True(t, HasPermission(RoleAdmin, PermissionReplayOutbox))
	assert.True(t, HasPermission(RoleAdmin, PermissionRunIntake))

	assert.False(t, HasPermission("nobody", PermissionCreateRequest))
}

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission(RoleAdmin, PermissionRunIntake))

	err := CheckPermission(RoleMember, PermissionRunIntake)
	assert.Error(t, err)

	var denied *PermissionDeniedError
	assert.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleMember, denied.Role)
	assert.Equal(t, PermissionRunIntake, denied.Permission)
}
