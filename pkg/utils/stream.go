package utils

import (
	"fmt"
	"net/http"
)

const (
	// StreamVersionHeader 标记聊天流式响应的协议版本，便于前端识别。
	StreamVersionHeader = "X-Chat-Stream-Version"
	// StreamVersionValue 当前的流式协议版本。
	StreamVersionValue = "v1"
)

// SetupTextStreamHeaders 设置纯文本增量输出的响应头
func SetupTextStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set(StreamVersionHeader, StreamVersionValue)
}

// WriteStreamChunk 发送一段增量文本并立即刷新到客户端
func WriteStreamChunk(w http.ResponseWriter, flusher http.Flusher, chunk string) error {
	if _, err := fmt.Fprint(w, chunk); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
