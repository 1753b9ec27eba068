// Package ui prints the console messages of the tweetcsv commands.
//
// Styling goes through lipgloss renderers bound to the destination writer, so
// redirected output stays plain text.
package ui
