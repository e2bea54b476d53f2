package commitlog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

const (
	formatDetailedConstant = "detailed"
	formatSimpleConstant   = "simple"
	formatOnelineConstant  = "oneline"
	formatJSONConstant     = "json"

	simpleMessageLimitConstant           = 60
	truncationSuffixConstant             = "..."
	jsonIndentConstant                   = "  "
	detailedCommitHeaderTemplateConstant = "commit %s (%s)\n"
	detailedAuthorTemplateConstant       = "author: %s <%s>\n"
	detailedDateTemplateConstant         = "date: %s\n"
	detailedMessageTemplateConstant      = "message: %s\n"
	detailedFilesHeaderTemplateConstant  = "files (%d):\n"
	detailedFileLineTemplateConstant     = "  %-3s %s\n"
	simpleLineTemplateConstant           = "%s - %s - %s - %s\n"
	onelineTemplateConstant              = "%s %s\n"
	statisticsHeaderConstant             = "\nstatistics:\n"
	statisticsAuthorTemplateConstant     = "  %s: %d commits\n"
	statisticsDateTemplateConstant       = "  %s: %d commits\n"
	statisticsFilesTemplateConstant      = "  changed files: %d\n"
)

// RenderCommits writes the commit list in the requested format.
func RenderCommits(writer io.Writer, commits []CommitRecord, formatName string) error {
	switch formatName {
	case formatJSONConstant:
		encodedCommits, encodeError := json.MarshalIndent(commits, "", jsonIndentConstant)
		if encodeError != nil {
			return encodeError
		}
		fmt.Fprintln(writer, string(encodedCommits))
	case formatOnelineConstant:
		for _, commit := range commits {
			fmt.Fprintf(writer, onelineTemplateConstant, commit.Hash, commit.Message)
		}
	case formatSimpleConstant:
		for _, commit := range commits {
			fmt.Fprintf(writer, simpleLineTemplateConstant, commit.Hash, truncateDate(commit.Date), commit.AuthorName, truncateMessage(commit.Message))
		}
	default:
		for _, commit := range commits {
			renderDetailedCommit(writer, commit)
		}
	}
	return nil
}

func renderDetailedCommit(writer io.Writer, commit CommitRecord) {
	fmt.Fprintf(writer, detailedCommitHeaderTemplateConstant, commit.Hash, commit.FullHash)
	fmt.Fprintf(writer, detailedAuthorTemplateConstant, commit.AuthorName, commit.AuthorEmail)
	fmt.Fprintf(writer, detailedDateTemplateConstant, commit.Date)
	fmt.Fprintf(writer, detailedMessageTemplateConstant, commit.Message)
	if len(commit.Files) > 0 {
		fmt.Fprintf(writer, detailedFilesHeaderTemplateConstant, len(commit.Files))
		for _, changedFile := range commit.Files {
			fmt.Fprintf(writer, detailedFileLineTemplateConstant, changedFile.Status, changedFile.Path)
		}
	}
	fmt.Fprintln(writer)
}

// RenderStatistics writes aggregate commit counts ordered for stable output.
func RenderStatistics(writer io.Writer, statistics Statistics) {
	fmt.Fprint(writer, statisticsHeaderConstant)
	for _, authorName := range sortedKeys(statistics.CommitsByAuthor) {
		fmt.Fprintf(writer, statisticsAuthorTemplateConstant, authorName, statistics.CommitsByAuthor[authorName])
	}
	for _, commitDate := range sortedKeys(statistics.CommitsByDate) {
		fmt.Fprintf(writer, statisticsDateTemplateConstant, commitDate, statistics.CommitsByDate[commitDate])
	}
	if statistics.TotalFileChanges > 0 {
		fmt.Fprintf(writer, statisticsFilesTemplateConstant, statistics.TotalFileChanges)
	}
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncateMessage(message string) string {
	if len(message) <= simpleMessageLimitConstant {
		return message
	}
	return message[:simpleMessageLimitConstant] + truncationSuffixConstant
}

func truncateDate(commitDate string) string {
	if len(commitDate) < 10 {
		return commitDate
	}
	return commitDate[:10]
}
