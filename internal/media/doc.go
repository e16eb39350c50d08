// Package media reads duration and frame size from recordings and exports.
package media
