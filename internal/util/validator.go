package util

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model/types"
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("playerid", playerID)
	validate.RegisterValidation("reasons", reasons)
	validate.RegisterValidation("rejectreason", rejectReason)
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})
	validate.RegisterStructValidation(reportSubmission, types.ReportSubmission{})

	return validate
}

func playerID(fl validator.FieldLevel) bool {
	_, err := ClassifyPlayerID(fl.Field().String())
	return err == nil
}

func reasons(fl validator.FieldLevel) bool {
	return constant.ReportReasonFlag(fl.Field().Uint()).Valid()
}

func rejectReason(fl validator.FieldLevel) bool {
	return constant.RejectReason(fl.Field().String()).Valid()
}

func reportSubmission(sl validator.StructLevel) {
	s := sl.Current().Interface().(types.ReportSubmission)
	if s.ReasonsBitflag.Has(constant.ReasonCustom) && s.ReasonsCustom == "" {
		sl.ReportError(s.ReasonsCustom, "ReasonsCustom", "reasonsCustom", "required_with_custom", "")
	}

	seen := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if _, dup := seen[p.PlayerID]; dup {
			sl.ReportError(s.Players, "Players", "players", "unique_player", p.PlayerID)
			return
		}
		seen[p.PlayerID] = struct{}{}
	}
}

func nullIntValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Int); ok {
		return valuer.Int64
	}

	return nil
}

func nullStringValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.String); ok {
		return valuer.String
	}

	return nil
}
