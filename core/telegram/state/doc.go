// Package state provides a lightweight FSM/session manager for Telegram bots.
// Bots declare their own State values and register one handler per state; the
// text router dispatches in-progress conversations here.
package state
