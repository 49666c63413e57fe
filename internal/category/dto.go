package category

import (
	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

func (dto CreateCategoryDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", dto.Name).
		Required().
		MaxLength(100)
	validator.Field("kind", dto.Kind).
		Custom(func(v interface{}) *errors.AppError {
			if _, err := ParseKind(v.(string)); err != nil {
				return errors.NewValidationFieldError("kind", ErrInvalidKind.Message, errors.ErrCodeInvalidKind)
			}
			return nil
		})
	return validator.Validate()
}

type UpdateCategoryDTO struct {
	Name string `json:"name"`
}

func (dto UpdateCategoryDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", dto.Name).
		Required().
		MaxLength(100)
	return validator.Validate()
}

type CategoryResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Global bool   `json:"global"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func ToResponses(categories []*Category) CategoriesResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, c.ToResponse())
	}
	return CategoriesResponse{Categories: responses}
}
