// Package download maps queue tasks onto the external download engine.
// BuildRequest turns a model.Task into an engine Request, and YTDLP runs
// requests through yt-dlp (via github.com/lrstanley/go-ytdlp), relaying
// progress and log lines back to the caller.
package download
