// Package logging builds the service's slog loggers.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	logger.InfoContext(ctx, "match evaluated",
//	    "text", input,            // masked: "[redacted len=42]"
//	    "endpoint", endpoint,     // userinfo masked: https://xxxxx@host/keywords
//	    "matched", true,
//	)
//
// # Redaction
//
// When Redact is enabled the handler's ReplaceAttr masks:
//
//   - query text under the keys "text" and "input"
//   - values of credential keys (auth, token, password, authorization, secret)
//   - the userinfo part of any URL inside a string or error value
//
// # Context
//
// Records logged with a context carry "request_id" (see WithRequestID) and,
// when a span is active, "trace_id" and "span_id".
package logging
