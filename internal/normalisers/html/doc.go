// Package html provides a Normaliser for pages fetched from trusted
// medical sites. It drops scripts, styles and comments, decodes entities
// and keeps one block element per line.
package html
