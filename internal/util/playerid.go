package util

import (
	"regexp"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/pkg/bcerr"
)

var (
	steamIDRegex   = regexp.MustCompile(`^\d{17}$`)
	windowsIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

// ClassifyPlayerID derives the identifier type from the shape of playerID.
func ClassifyPlayerID(playerID string) (constant.PlayerIDType, error) {
	switch {
	case steamIDRegex.MatchString(playerID):
		return constant.PlayerIDTypeSteam, nil
	case windowsIDRegex.MatchString(playerID):
		return constant.PlayerIDTypeWindows, nil
	}
	return "", bcerr.ErrInvalidReq.Msg("unknown player id format: %q", playerID)
}
