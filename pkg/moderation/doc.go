/*
Package moderation holds the content rules of the service: the lexical filter applied to
family-friendly responses, the validator for user-submitted persona descriptions and the
input sanitizer run on everything users type.

The vocabularies are unexported and only handed out as copies, so their iteration order is
stable for the lifetime of the process.
*/
package moderation
