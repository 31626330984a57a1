// Command mudra controls a media player with hand gestures and voice. It runs the
// fusion engine as a local server and offers offline tools for checking the intent
// parser, the gesture classifier and the command history.
package main
