// Package session keeps the per-user conversation state of the bot.
// Each user has at most one session; idle users hold no memory at all.
package session
