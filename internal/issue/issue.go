// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	ArchiveNotFoundId Id = iota + 1
	PermissionDeniedId
	UnsupportedInputId
	ArchiveCorruptId
	NoArchivesId
	MissingPartId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference pages for the affected format or command
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the page with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	archiveNotFoundIssue = &Issue{
		id: ArchiveNotFoundId,
		mdMsg: `
# Archive not found

The file you asked for does not exist in the working directory.

## Things you can try
- List what unzipper can see:
~~~
$ unzipper list
~~~
- Pass a path relative to the working directory, or change it with ` + "`--dir`" + `.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

unzipper could not create or write files in the target directory.

## Things you can try
- Check the owner and mode of the directory:
~~~
$ ls -ld <directory>
~~~
- Extract into a directory you own with ` + "`--dest`" + `.`,
	}

	unsupportedInputIssue = &Issue{
		id: UnsupportedInputId,
		mdMsg: `
# Unsupported input

The path is not something this command can work with.

## Supported inputs
- ` + "`extract`" + `: .zip, .rar, .gz, .tar, .tar.gz, .tgz, .lz4 and .sz files
- ` + "`zip`" + `: a directory
- ` + "`join`" + `: the first part of a split archive, ending in .001`,
		docLinks: []HttpLink{
			"https://pkg.go.dev/archive/zip",
			"https://pkg.go.dev/archive/tar",
		},
	}

	archiveCorruptIssue = &Issue{
		id: ArchiveCorruptId,
		mdMsg: `
# The archive could not be read

The file ended early or its headers do not match its extension.

## Things you can try
- Download or copy the archive again and compare its checksum.
- If it is a split archive, join all parts first:
~~~
$ unzipper join backup.zip.001
~~~`,
	}

	noArchivesIssue = &Issue{
		id: NoArchivesId,
		mdMsg: `
# No archives found

The working directory holds no supported archive files.

## Things you can try
- Point unzipper at another directory with ` + "`--dir`" + `.
- Set ` + "`work_dir`" + ` in your config file:
~~~
$ unzipper config init
~~~`,
	}

	missingPartIssue = &Issue{
		id: MissingPartId,
		mdMsg: `
# A split archive part is missing

Parts are joined in numeric order (.001, .002, ...) and must not skip a number.

## Things you can try
- Check that every part was uploaded to the same directory.
- Make sure no part was renamed.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The config file is not valid CUE or does not match the configuration schema.

## Things you can try
- Print the effective configuration:
~~~
$ unzipper config show
~~~
- Write a fresh default file and edit from there:
~~~
$ unzipper config init
~~~`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		archiveNotFoundIssue.Id():  archiveNotFoundIssue,
		permissionDeniedIssue.Id(): permissionDeniedIssue,
		unsupportedInputIssue.Id(): unsupportedInputIssue,
		archiveCorruptIssue.Id():   archiveCorruptIssue,
		noArchivesIssue.Id():       noArchivesIssue,
		missingPartIssue.Id():      missingPartIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
