// Package git reads commit history of the repository containing the docs
// directory, to report when each document last changed and by whom.
package git
