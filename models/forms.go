package models

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// FormErrors maps a form field name to the message shown next to it.
// The empty key holds errors that are not tied to a single field.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e[k])
			continue
		}
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

func (e FormErrors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// AsFormErrors converts ozzo validation errors into FormErrors. Any other
// error is returned untouched as the second value.
func AsFormErrors(err error) (FormErrors, error) {
	if err == nil {
		return nil, nil
	}
	var fe FormErrors
	if errors.As(err, &fe) {
		return fe, nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fe = FormErrors{}
		for field, ferr := range verrs {
			fe[field] = ferr.Error()
		}
		return fe, nil
	}
	return nil, err
}

const requiredMsg = "This field is required."

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

type PostForm struct {
	Title      string   `form:"title" json:"title"`
	Content    string   `form:"content" json:"content"`
	Excerpt    string   `form:"excerpt" json:"excerpt"`
	CategoryID string   `form:"category" json:"category"`
	TagIDs     []string `form:"tags" json:"tags"`
	Status     string   `form:"status" json:"status"`
	ClearImage bool     `form:"image_clear" json:"image_clear"`
}

// PostFormFrom fills a form with the current values of an existing post.
func PostFormFrom(p *Post) PostForm {
	f := PostForm{
		Title:   p.Title,
		Content: p.Content,
		Excerpt: p.Excerpt,
		Status:  string(p.Status),
	}
	if p.CategoryID != nil {
		f.CategoryID = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	for _, t := range p.Tags {
		f.TagIDs = append(f.TagIDs, strconv.FormatUint(uint64(t.ID), 10))
	}
	return f
}

func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	if f.Status == "" {
		f.Status = string(StatusDraft)
	}
}

func (f PostForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error(requiredMsg),
			validation.RuneLength(1, 200).Error("Ensure this value has at most 200 characters.")),
		validation.Field(&f.Content, validation.Required.Error(requiredMsg), notBlank),
		validation.Field(&f.Excerpt,
			validation.RuneLength(0, 300).Error("Ensure this value has at most 300 characters.")),
		validation.Field(&f.Status,
			validation.Required.Error(requiredMsg),
			validation.In(string(StatusDraft), string(StatusPublished)).Error("Select a valid choice.")),
		validation.Field(&f.CategoryID, is.Digit.Error("Select a valid choice.")),
		validation.Field(&f.TagIDs, validation.Each(is.Digit.Error("Select a valid choice."))),
	)
}

// Category returns the selected category id, nil when none was chosen.
func (f PostForm) Category() *uint {
	if f.CategoryID == "" {
		return nil
	}
	id, err := strconv.ParseUint(f.CategoryID, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

// Tags returns the selected tag ids without duplicates.
func (f PostForm) Tags() []uint {
	seen := make(map[uint]bool, len(f.TagIDs))
	ids := make([]uint, 0, len(f.TagIDs))
	for _, raw := range f.TagIDs {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil || id == 0 || seen[uint(id)] {
			continue
		}
		seen[uint(id)] = true
		ids = append(ids, uint(id))
	}
	return ids
}

// HasTag is used by the post form to keep tag boxes checked after a failed submit.
func (f PostForm) HasTag(id uint) bool {
	want := strconv.FormatUint(uint64(id), 10)
	for _, raw := range f.TagIDs {
		if raw == want {
			return true
		}
	}
	return false
}

type CommentForm struct {
	Content string `form:"content" json:"content"`
}

func (f CommentForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Content,
			validation.Required.Error(requiredMsg),
			notBlank,
			validation.RuneLength(1, 2000).Error("Ensure this value has at most 2000 characters.")),
	)
}

type RegisterForm struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

func (f RegisterForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username,
			validation.Required.Error(requiredMsg),
			validation.RuneLength(3, 150).Error("Username must be between 3 and 150 characters."),
			validation.Match(usernameRe).Error("Letters, digits and @/./+/-/_ only.")),
		validation.Field(&f.Email, validation.Required.Error(requiredMsg), is.EmailFormat.Error("Enter a valid email address.")),
		validation.Field(&f.FirstName, validation.RuneLength(0, 150)),
		validation.Field(&f.LastName, validation.RuneLength(0, 150)),
		validation.Field(&f.Password, passwordRules...),
		validation.Field(&f.PasswordConfirm,
			validation.Required.Error(requiredMsg),
			matches(f.Password)),
	)
}

type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required.Error(requiredMsg)),
		validation.Field(&f.Password, validation.Required.Error(requiredMsg)),
	)
}

type PasswordChangeForm struct {
	OldPassword        string `form:"old_password" json:"old_password"`
	NewPassword        string `form:"new_password" json:"new_password"`
	NewPasswordConfirm string `form:"new_password_confirm" json:"new_password_confirm"`
}

func (f PasswordChangeForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.OldPassword, validation.Required.Error(requiredMsg)),
		validation.Field(&f.NewPassword, passwordRules...),
		validation.Field(&f.NewPasswordConfirm,
			validation.Required.Error(requiredMsg),
			matches(f.NewPassword)),
	)
}

type PasswordResetForm struct {
	Email string `form:"email" json:"email"`
}

func (f PasswordResetForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required.Error(requiredMsg), is.EmailFormat.Error("Enter a valid email address.")),
	)
}

type SetPasswordForm struct {
	NewPassword        string `form:"new_password" json:"new_password"`
	NewPasswordConfirm string `form:"new_password_confirm" json:"new_password_confirm"`
}

func (f SetPasswordForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.NewPassword, passwordRules...),
		validation.Field(&f.NewPasswordConfirm,
			validation.Required.Error(requiredMsg),
			matches(f.NewPassword)),
	)
}

type CategoryForm struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

func (f CategoryForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error(requiredMsg), validation.RuneLength(1, 100)),
	)
}

type TagForm struct {
	Name string `form:"name" json:"name"`
}

func (f TagForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error(requiredMsg), validation.RuneLength(1, 50)),
	)
}

var passwordRules = []validation.Rule{
	validation.Required.Error(requiredMsg),
	validation.RuneLength(8, 128).Error("Password must be at least 8 characters."),
	validation.Match(regexp.MustCompile(`\D`)).Error("Password can't be entirely numeric."),
}

// notBlank rejects values made only of whitespace. Content fields keep their
// surrounding whitespace, so Required alone lets them through.
var notBlank = validation.By(func(value interface{}) error {
	if s, _ := value.(string); s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", requiredMsg)
	}
	return nil
})

func matches(want string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if s, _ := value.(string); s != want {
			return validation.NewError("validation_password_mismatch", "The two password fields didn't match.")
		}
		return nil
	})
}
