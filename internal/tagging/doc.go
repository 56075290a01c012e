// Package tagging coordinates the visual-analysis stage: duplicate-run
// guards, provider dispatch, tag-set replacement, and the vision status
// column.
package tagging
