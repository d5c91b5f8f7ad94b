// Package report renders evaluation reports for terminals and scripts.
package report
