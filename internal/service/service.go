// Package service contains the shopping list operations.
//
// It sits between the handler and repository layers: handlers pass it
// validated input, and it loads one list, applies one mutation and saves
// the whole list back.
package service
