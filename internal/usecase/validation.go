package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"ai-chat-assistant/internal/domain"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// UploadValidator wraps go-playground/validator with the upload rules.
type UploadValidator struct {
	validator *validator.Validate
	allowed   map[string]struct{}
	maxSize   int64
}

type uploadRules struct {
	Filename  string `validate:"required"`
	Extension string `validate:"allowedext"`
	Size      int64  `validate:"maxsize"`
}

func NewUploadValidator(allowedTypes []string, maxSize int64) *UploadValidator {
	u := &UploadValidator{validator: validator.New(), allowed: make(map[string]struct{}, len(allowedTypes)), maxSize: maxSize}
	for _, t := range allowedTypes {
		u.allowed[strings.ToLower(t)] = struct{}{}
	}
	u.Register(
		ValidationRule{Rule: registerFn("allowedext", func(fl validator.FieldLevel) bool {
			_, ok := u.allowed[fl.Field().String()]
			return ok
		})},
		ValidationRule{Rule: registerFn("maxsize", func(fl validator.FieldLevel) bool {
			return u.maxSize <= 0 || fl.Field().Int() <= u.maxSize
		})},
	)
	return u
}

// registerFn panics if the tag cannot be registered, so a broken rule fails
// at construction instead of silently never running.
func registerFn(tag string, fn validator.Func) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
}

func (u *UploadValidator) Register(rules ...ValidationRule) {
	for _, r := range rules {
		r.Rule(u.validator)
	}
}

// Validate checks size first, then presence of a name, then the extension.
// Size < 0 means unknown and is checked after the bytes are stored.
func (u *UploadValidator) Validate(name string, size int64) error {
	rules := uploadRules{Filename: strings.TrimSpace(name), Extension: Extension(name), Size: size}
	err := u.validator.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	failed := map[string]bool{}
	for _, fe := range verrs {
		failed[fe.StructField()] = true
	}
	switch {
	case failed["Size"]:
		return u.TooLarge(size)
	case failed["Filename"]:
		return domain.NewValidationError(domain.ErrInvalidArgument, "Filename is required")
	case failed["Extension"]:
		return domain.NewValidationError(domain.ErrUnsupportedFileType,
			fmt.Sprintf("File type '%s' not supported. Allowed types: %s", rules.Extension, strings.Join(u.AllowedTypes(), ", ")))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
}

func (u *UploadValidator) TooLarge(size int64) error {
	return domain.NewValidationError(domain.ErrFileTooLarge,
		fmt.Sprintf("File size (%d bytes) exceeds maximum allowed size (%d bytes)", size, u.maxSize))
}

func (u *UploadValidator) MaxSize() int64 { return u.maxSize }

// AllowedTypes returns the sorted extension allow-list.
func (u *UploadValidator) AllowedTypes() []string {
	out := make([]string, 0, len(u.allowed))
	for t := range u.allowed {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Extension is the lower-cased extension of name, including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}
