package ui

import (
	"fmt"
	"time"
)

// Console messages shown by the fetch command.
const (
	StartMessage       = "Starting to search Tweets. Hang on..."
	FailureMessage     = "Something went wrong, tweets couldn't be downloaded. Please check the logs."
	MissingArgsMessage = "You have not provided one or more of the arguments needed to run this command."
	HelpHint           = "Please run this command with the --help flag to see your options."
	AuthHint           = "Twitter rejected the credentials. Check your keys, or run 'tweetcsv auth login' to store new ones."
)

// ProgressLine is printed after every appended tweet.
func ProgressLine(count int) string {
	if count == 1 {
		return "1 tweet found. Adding to the CSV file."
	}
	return fmt.Sprintf("%d tweets found. Adding to the CSV file.", count)
}

// SavedMessage is printed once a fetch completes.
func SavedMessage(file string) string {
	return fmt.Sprintf("Tweets saved in the file %s", file)
}

// StatusTracker keeps track of fetch progress
type StatusTracker struct {
	Fetched   int
	StartTime time.Time
	now       func() time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{StartTime: time.Now(), now: time.Now}
}

// Update records the running count reported by the fetch loop
func (st *StatusTracker) Update(count int) {
	st.Fetched = count
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return st.now().Sub(st.StartTime)
}

// GetFetchRate returns the average fetch rate (tweets per minute)
func (st *StatusTracker) GetFetchRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Fetched) / elapsed
}

// Summary describes the run so far in one line
func (st *StatusTracker) Summary() string {
	return fmt.Sprintf("%d tweets in %s (%.1f/min)",
		st.Fetched, st.GetElapsedTime().Round(time.Second), st.GetFetchRate())
}
