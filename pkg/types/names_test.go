package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "talker", false},
		{"underscore", "_hidden_node", false},
		{"digits", "node42", false},
		{"empty", "", true},
		{"leading digit", "1node", true},
		{"slash", "a/b", true},
		{"dash", "my-node", true},
		{"too long", strings.Repeat("a", NodeNameMaxLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNodeName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"root", "/", false},
		{"single", "/robot", false},
		{"nested", "/robot/arm_1", false},
		{"empty", "", true},
		{"relative", "robot", true},
		{"trailing slash", "/robot/", true},
		{"double slash", "/robot//arm", true},
		{"token leading digit", "/robot/1arm", true},
		{"bad char", "/ro.bot", true},
		{"too long", "/" + strings.Repeat("a", NamespaceMaxLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNamespace(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNamespace)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSentinelErrors_Prefix 错误文本带包名前缀
func TestSentinelErrors_Prefix(t *testing.T) {
	for _, err := range []error{ErrInvalidNodeName, ErrInvalidNamespace, ErrInvalidGID, ErrSequenceExhausted} {
		assert.True(t, strings.HasPrefix(err.Error(), "types: "), err.Error())
	}

	err := ValidateNodeName("")
	assert.Equal(t, "types: invalid node name: must not be empty", err.Error())
}
