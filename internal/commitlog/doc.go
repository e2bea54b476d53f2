// Package commitlog queries and renders Git commit history across repositories.
package commitlog
