//go:build sonic

package sheetsapi

import "github.com/bytedance/sonic"

// for imroc/req
var jsonMarshal = sonic.ConfigDefault.Marshal
var jsonUnmarshal = sonic.ConfigDefault.Unmarshal
