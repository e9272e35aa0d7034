package types

import (
	"errors"
	"fmt"
)

// 名称长度上限
const (
	NodeNameMaxLength  = 255
	NamespaceMaxLength = 253
)

var (
	// ErrInvalidNodeName 非法节点名
	ErrInvalidNodeName = errors.New("types: invalid node name")

	// ErrInvalidNamespace 非法命名空间
	ErrInvalidNamespace = errors.New("types: invalid node namespace")
)

// ValidateNodeName 校验节点名
//
// 规则：非空，仅包含字母、数字和下划线，不以数字开头，长度不超过 NodeNameMaxLength。
func ValidateNodeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidNodeName)
	}
	if len(name) > NodeNameMaxLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidNodeName, NodeNameMaxLength)
	}
	if isDigit(name[0]) {
		return fmt.Errorf("%w: must not start with a number", ErrInvalidNodeName)
	}
	for i := 0; i < len(name); i++ {
		if !isTokenChar(name[i]) {
			return fmt.Errorf("%w: contains unallowed character %q at index %d", ErrInvalidNodeName, name[i], i)
		}
	}
	return nil
}

// ValidateNamespace 校验命名空间
//
// 规则：以 '/' 开头；除根命名空间外不以 '/' 结尾；不含连续的 '/'；
// 每一段满足与节点名相同的字符规则。
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidNamespace)
	}
	if ns[0] != '/' {
		return fmt.Errorf("%w: must be absolute", ErrInvalidNamespace)
	}
	if ns == "/" {
		return nil
	}
	if len(ns) > NamespaceMaxLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidNamespace, NamespaceMaxLength)
	}
	if ns[len(ns)-1] == '/' {
		return fmt.Errorf("%w: must not end with a forward slash", ErrInvalidNamespace)
	}

	tokenStart := true
	for i := 1; i < len(ns); i++ {
		c := ns[i]
		switch {
		case c == '/':
			if tokenStart {
				return fmt.Errorf("%w: contains repeated forward slash at index %d", ErrInvalidNamespace, i)
			}
			tokenStart = true
		case !isTokenChar(c):
			return fmt.Errorf("%w: contains unallowed character %q at index %d", ErrInvalidNamespace, c, i)
		case tokenStart && isDigit(c):
			return fmt.Errorf("%w: token must not start with a number at index %d", ErrInvalidNamespace, i)
		default:
			tokenStart = false
		}
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isTokenChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_'
}
