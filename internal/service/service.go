// Package service holds the tutorial use cases.
//
// Handlers call it with already validated input; it talks to the store only
// through repository.TutorialRepository, so it works unchanged on every
// store driver.
package service
