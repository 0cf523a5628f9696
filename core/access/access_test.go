package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

func TestAuthorize(t *testing.T) {
	owner := &user.User{ID: 1}
	other := &user.User{ID: 2}

	tests := []struct {
		name    string
		action  Action
		actor   *user.User
		res     Resource
		wantErr error
	}{
		{name: "manage: owner", action: ActionManage, actor: owner, res: Resource{OwnerID: 1}},
		{name: "manage: not owner", action: ActionManage, actor: other, res: Resource{OwnerID: 1}, wantErr: core.ErrForbidden},
		{name: "manage: no owner", action: ActionManage, actor: owner, res: Resource{}, wantErr: core.ErrForbidden},
		{name: "manage: anonymous", action: ActionManage, res: Resource{OwnerID: 1}, wantErr: core.ErrForbidden},
		{name: "manage: enrolled student", action: ActionManage, actor: other, res: Resource{OwnerID: 1, Enrolled: true}, wantErr: core.ErrForbidden},
		{name: "study: enrolled", action: ActionStudy, actor: other, res: Resource{OwnerID: 1, Enrolled: true}},
		{name: "study: not enrolled", action: ActionStudy, actor: other, res: Resource{OwnerID: 1}, wantErr: core.ErrForbidden},
		{name: "study: owner not enrolled", action: ActionStudy, actor: owner, res: Resource{OwnerID: 1}, wantErr: core.ErrForbidden},
		{name: "study: free course not enrolled", action: ActionStudy, actor: other, res: Resource{CourseFree: true}, wantErr: core.ErrForbidden},
		{name: "preview: free course", action: ActionPreview, res: Resource{CourseFree: true}},
		{name: "preview: free step", action: ActionPreview, res: Resource{StepFree: true}},
		{name: "preview: paid content", action: ActionPreview, actor: other, res: Resource{IsPublished: true}, wantErr: core.ErrForbidden},
		{name: "subscribe: published", action: ActionSubscribe, actor: other, res: Resource{IsPublished: true}},
		{name: "subscribe: draft", action: ActionSubscribe, actor: other, res: Resource{}, wantErr: core.ErrForbidden},
		{name: "unknown action", action: Action(42), actor: owner, res: Resource{OwnerID: 1, Enrolled: true}, wantErr: core.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, Authorize(tt.action, tt.actor, tt.res))
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "manage", ActionManage.String())
	assert.Equal(t, "preview", ActionPreview.String())
	assert.Equal(t, "unknown", Action(0).String())
}
