package util

import "regexp"

var epicIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// ValidEpicID 校验史诗ID格式（小写字母开头，限字母/数字/下划线）
func ValidEpicID(id string) bool {
	return epicIDPattern.MatchString(id)
}
