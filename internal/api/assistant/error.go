package assistant

import "AsystentGolang/pkg/response"

var (
	ErrInvalidAudioFile    = response.NewError(400, "invalid audio file")
	ErrAudioFileTooLarge   = response.NewError(400, "audio file too large")
	ErrUnsupportedFormat   = response.NewError(400, "unsupported audio format")
	ErrTranscriptionFailed = response.NewError(500, "failed to transcribe audio")
	ErrSmsChannelOffline   = response.NewError(503, "sms channel is not connected")
	ErrExchangeNotFound    = response.NewError(404, "exchange not found")
)
