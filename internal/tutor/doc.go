// Package tutor holds the pure guardrail and response-shaping pieces of the
// math tutor: the safety filter, PII scrubbing, history windowing, prompt
// assembly and step parsing. Nothing here performs I/O.
package tutor
