package model

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Validate - field-level constraints cho create request.
// Số 0 ở publicationYear/pageCount được coi là "không gửi" (ozzo bỏ qua empty value).
// Độ dài text tính theo ký tự (RuneLength), khớp với VARCHAR(n) của schema.
func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.By(notBlank),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.Description, validation.RuneLength(0, MaxDescriptionLength)),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.By(notBlank),
			validation.RuneLength(1, MaxAuthorLength),
		),
		validation.Field(&r.ISBN, validation.RuneLength(0, MaxISBNLength)),
		validation.Field(&r.Publisher, validation.RuneLength(0, MaxPublisherLength)),
		validation.Field(&r.PublicationYear, yearRules()...),
		validation.Field(&r.PageCount, pageCountRules()...),
		validation.Field(&r.Genre, validation.RuneLength(0, MaxGenreLength)),
		validation.Field(&r.Language, validation.RuneLength(0, MaxLanguageLength)),
		validation.Field(&r.Price, validation.By(validPrice)),
		validation.Field(&r.CoverImageURL, validation.RuneLength(0, MaxCoverURLLength)),
	)
}

// Validate - chỉ kiểm tra các field được gửi (non-nil).
// Khác create, số 0 được gửi lên vẫn bị range-check vì pointer đã cho biết field có mặt.
func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil,
				validation.Required.Error("title cannot be empty"),
				validation.By(notBlank),
			),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.Description, validation.RuneLength(0, MaxDescriptionLength)),
		validation.Field(&r.Author,
			validation.When(r.Author != nil,
				validation.Required.Error("author cannot be empty"),
				validation.By(notBlank),
			),
			validation.RuneLength(1, MaxAuthorLength),
		),
		validation.Field(&r.ISBN, validation.RuneLength(0, MaxISBNLength)),
		validation.Field(&r.Publisher, validation.RuneLength(0, MaxPublisherLength)),
		validation.Field(&r.PublicationYear, validation.By(suppliedInRange(MinPublicationYear, MaxPublicationYear))),
		validation.Field(&r.PageCount, validation.By(suppliedInRange(MinPageCount, MaxPageCount))),
		validation.Field(&r.Genre, validation.RuneLength(0, MaxGenreLength)),
		validation.Field(&r.Language, validation.RuneLength(0, MaxLanguageLength)),
		validation.Field(&r.Price, validation.By(validPrice)),
		validation.Field(&r.CoverImageURL, validation.RuneLength(0, MaxCoverURLLength)),
	)
}

// ValidateListRequest - take > 0, skip >= 0
func ValidateListRequest(req ListBooksRequest) error {
	if req.All {
		return nil
	}
	if req.Skip < 0 {
		return ErrInvalidSkip
	}
	if req.Take <= 0 {
		return ErrInvalidTake
	}
	return nil
}

func yearRules() []validation.Rule {
	return []validation.Rule{
		validation.Min(MinPublicationYear).Error(fmt.Sprintf("must be between %d and %d", MinPublicationYear, MaxPublicationYear)),
		validation.Max(MaxPublicationYear).Error(fmt.Sprintf("must be between %d and %d", MinPublicationYear, MaxPublicationYear)),
	}
}

func pageCountRules() []validation.Rule {
	return []validation.Rule{
		validation.Min(MinPageCount).Error(fmt.Sprintf("must be between %d and %d", MinPageCount, MaxPageCount)),
		validation.Max(MaxPageCount).Error(fmt.Sprintf("must be between %d and %d", MinPageCount, MaxPageCount)),
	}
}

// suppliedInRange range-check *int đã gửi, kể cả 0. nil = không gửi.
func suppliedInRange(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		v, ok := value.(*int)
		if !ok || v == nil {
			return nil
		}
		if *v < min || *v > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func notBlank(value interface{}) error {
	s, isNil := stringValue(value)
	if isNil {
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func validPrice(value interface{}) error {
	var p decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		p = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		p = *v
	default:
		return fmt.Errorf("unsupported price type %T", value)
	}

	if p.IsNegative() {
		return errors.New("must be between 0 and 10000")
	}
	if p.GreaterThan(MaxPrice) {
		return errors.New("must be between 0 and 10000")
	}
	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, false
	case *string:
		if v == nil {
			return "", true
		}
		return *v, false
	}
	return "", true
}
