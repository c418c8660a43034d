package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrors(t *testing.T, err error) FormErrors {
	t.Helper()
	fe, other := AsFormErrors(err)
	require.NoError(t, other)
	return fe
}

func TestPostFormValidate(t *testing.T) {
	valid := PostForm{Title: "Hello World", Content: "body", Status: "published", CategoryID: "2", TagIDs: []string{"1", "3"}}
	assert.NoError(t, valid.Validate())

	form := PostForm{Status: "archived", CategoryID: "abc", TagIDs: []string{"1", "x"}}
	fe := validationErrors(t, form.Validate())
	assert.Equal(t, requiredMsg, fe["title"])
	assert.Equal(t, requiredMsg, fe["content"])
	assert.Equal(t, "Select a valid choice.", fe["status"])
	assert.Equal(t, "Select a valid choice.", fe["category"])
	assert.Contains(t, fe, "tags")
}

func TestContentRejectsWhitespaceOnly(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"spaces", "   "},
		{"newlines and tabs", "\n\t \r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := PostForm{Title: "T", Content: tt.content, Status: "published"}
			assert.Equal(t, requiredMsg, validationErrors(t, post.Validate())["content"])

			comment := CommentForm{Content: tt.content}
			assert.Equal(t, requiredMsg, validationErrors(t, comment.Validate())["content"])
		})
	}

	assert.NoError(t, PostForm{Title: "T", Content: "  indented body", Status: "draft"}.Validate())
	assert.NoError(t, CommentForm{Content: " ok "}.Validate())
}

func TestPostFormNormalizeDefaultsStatus(t *testing.T) {
	form := PostForm{Title: "  Spaced  "}
	form.Normalize()
	assert.Equal(t, "Spaced", form.Title)
	assert.Equal(t, string(StatusDraft), form.Status)
}

func TestPostFormSelections(t *testing.T) {
	form := PostForm{CategoryID: "5", TagIDs: []string{"2", "2", "0", "x", "9"}}
	if assert.NotNil(t, form.Category()) {
		assert.Equal(t, uint(5), *form.Category())
	}
	assert.Equal(t, []uint{2, 9}, form.Tags())
	assert.True(t, form.HasTag(9))
	assert.False(t, form.HasTag(3))

	assert.Nil(t, PostForm{}.Category())
}

func TestPostFormFrom(t *testing.T) {
	cat := uint(4)
	post := &Post{Title: "T", Content: "C", Status: StatusPublished, CategoryID: &cat, Tags: []Tag{{ID: 1}, {ID: 2}}}
	form := PostFormFrom(post)
	assert.Equal(t, "4", form.CategoryID)
	assert.Equal(t, []string{"1", "2"}, form.TagIDs)
	assert.Equal(t, "published", form.Status)
}

func TestRegisterFormValidate(t *testing.T) {
	form := RegisterForm{Username: "ada", Email: "ada@example.com", Password: "analytical1", PasswordConfirm: "analytical1"}
	assert.NoError(t, form.Validate())

	form.PasswordConfirm = "different1"
	fe := validationErrors(t, form.Validate())
	assert.Equal(t, "The two password fields didn't match.", fe["password_confirm"])

	bad := RegisterForm{Username: "a b", Email: "nope", Password: "12345678", PasswordConfirm: "12345678"}
	fe = validationErrors(t, bad.Validate())
	assert.Contains(t, fe, "username")
	assert.Equal(t, "Enter a valid email address.", fe["email"])
	assert.Equal(t, "Password can't be entirely numeric.", fe["password"])
}

func TestSetPasswordFormTooShort(t *testing.T) {
	fe := validationErrors(t, SetPasswordForm{NewPassword: "abc", NewPasswordConfirm: "abc"}.Validate())
	assert.Equal(t, "Password must be at least 8 characters.", fe["new_password"])
}

func TestAsFormErrorsPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	fe, err := AsFormErrors(boom)
	assert.Nil(t, fe)
	assert.Equal(t, boom, err)

	fe, err = AsFormErrors(FormErrors{"title": "taken"})
	assert.NoError(t, err)
	assert.Equal(t, "taken", fe["title"])
	assert.Equal(t, "title: taken", fe.Error())
}
