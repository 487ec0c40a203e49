package common

import (
	"fmt"
	"strconv"
	"strings"

	"clothing-api/pkg/utils"
)

// MaxLimitPerPage bounds the limitPerPage query parameter.
const MaxLimitPerPage = 1000

// ParseLimitPerPage reads the optional limitPerPage query value. An empty
// value returns 0, which leaves the store default in place.
func ParseLimitPerPage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limitPerPage must be an integer")
	}
	if err := utils.ValidateVar(limit, fmt.Sprintf("min=1,max=%d", MaxLimitPerPage)); err != nil {
		return 0, fmt.Errorf("limitPerPage must be between 1 and %d", MaxLimitPerPage)
	}
	return limit, nil
}
