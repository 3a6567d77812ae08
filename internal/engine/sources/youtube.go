// Package sources reads recipe source material from video pages.
//
// The YouTube implementation is split across three files by responsibility:
//
//	youtube_page.go       — watch-page player state, video ids and caption track choice
//	resolver.go           — title/description fallback chains (ResolveSource)
//	youtube_transcript.go — caption retrieval fallback chain (RetrieveTranscript)
package sources
