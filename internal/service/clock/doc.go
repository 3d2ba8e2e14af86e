// Package clock implements the alarm-clock command line.
//
// It stands in for the app's main screen: pick a date and time, type a
// message, schedule or cancel the alarm, and look at or stop the alert. Every
// action is a call to the daemon; results are printed as short confirmations.
package clock
