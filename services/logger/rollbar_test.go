package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

func Test_newEntry(t *testing.T) {
	errBoom := errors.New("boom")
	teacher := user.User{ID: 7, Email: "teacher@test.cd", IsSuperuser: true}

	e := newEntry([]interface{}{
		errBoom,
		user.User{}, // anonymous
		teacher,
		user.User{ID: 8},
		map[string]interface{}{"route": "/api/teacher/course/:id"},
		map[string]interface{}{"param_id": "3"},
		42,
		nil,
	})
	assert.Equal(t, errBoom, e.err)
	require.NotNil(t, e.actor)
	assert.Equal(t, teacher.ID, e.actor.ID)
	assert.Equal(t, map[string]interface{}{
		"route":          "/api/teacher/course/:id",
		"param_id":       "3",
		"user_id":        7,
		"user_superuser": true,
	}, e.extras)
	assert.Equal(t, []interface{}{42}, e.other)

	assert.Equal(t, []interface{}{"failed", errBoom, e.extras}, e.rollbarArgs("failed"))
	assert.Equal(t, []interface{}{"hello"}, newEntry(nil).rollbarArgs("hello"))
}

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "TEST : ", 0), core.NewTestConfig())
	logger.Enable(false)

	logger.Info("course deleted", map[string]interface{}{"course_id": 3}, user.User{ID: 1})
	assert.Equal(t, "TEST : course deleted course_id=3 user_id=1 user_superuser=false\n", buf.String())
}
