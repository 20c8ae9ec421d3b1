// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package utils

// Option is a loosely typed option bag passed to pluggable components
// (transcriber engines, observers). Keys are dotted paths.
type Option map[string]interface{}

// GetString returns the string value for key and whether it was present.
func (o Option) GetString(key string) (string, bool) {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
