// Package language normalizes caption language tags supplied by webhook
// clients into canonical BCP 47 form.
package language
