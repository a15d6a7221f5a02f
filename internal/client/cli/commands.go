package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/client/upload"
)

type commandFn func(a *App, ctx context.Context, args []string) error

// commands is the logged-in command set. Handlers must not refer back to
// this table.
var commands = map[string]commandFn{
	"ls":         cmdList,
	"cd":         cmdChangeDir,
	"back":       cmdBack,
	"next":       cmdNext,
	"prev":       cmdPrev,
	"page":       cmdPage,
	"tree":       cmdTree,
	"search":     cmdSearch,
	"fsearch":    cmdSearchFolders,
	"mkdir":      cmdMkdir,
	"rmdir":      cmdRmdir,
	"renamedir":  cmdRenameDir,
	"mvdir":      cmdMoveDir,
	"folder":     cmdFolderInfo,
	"upload":     cmdUpload,
	"info":       cmdInfo,
	"rename":     cmdRename,
	"mv":         cmdMove,
	"rm":         cmdRemove,
	"purge":      cmdPurge,
	"share":      cmdShare,
	"unshare":    cmdUnshare,
	"download":   cmdDownload,
	"select":     cmdSelect,
	"selectpage": cmdSelectPage,
	"selectall":  cmdSelectAll,
	"clear":      cmdClear,
	"selected":   cmdSelected,
	"bulkrm":     cmdBulkDelete,
	"bulkmv":     cmdBulkMove,
	"storage":    cmdStorage,
	"whoami":     cmdWhoami,
}

// Exec runs one logged-in command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	fn, ok := commands[cmd]
	if !ok {
		return errUnknownCommand
	}
	err := fn(a, ctx, args)
	if errors.Is(err, client.ErrAuthRequired) {
		a.expire(ctx)
	}
	return err
}

// expire drops a session the backend no longer accepts.
func (a *App) expire(ctx context.Context) {
	a.log.Info(ctx, "session rejected by backend, logging out locally")
	a.gate.Logout(ctx)
	a.dash.Reset()
}

// parseID accepts a positive numeric id.
func parseID(s string) (models.ID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return models.ID(strconv.FormatInt(n, 10)), true
}

// parseTarget is parseID plus "/" for the root folder.
func parseTarget(s string) (models.ID, bool) {
	if s == "/" || s == "root" {
		return "", true
	}
	return parseID(s)
}

func cmdList(a *App, ctx context.Context, args []string) error {
	if err := a.dash.Refresh(ctx); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdChangeDir(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"cd <id|/|..>"}
	}
	var err error
	switch args[0] {
	case "..":
		err = a.dash.Back(ctx)
	default:
		target, ok := parseTarget(args[0])
		if !ok {
			return usageError{"cd <id|/|..>"}
		}
		err = a.dash.Navigate(ctx, target)
	}
	if err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdBack(a *App, ctx context.Context, args []string) error {
	if err := a.dash.Back(ctx); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdNext(a *App, ctx context.Context, args []string) error {
	if err := a.dash.NextPage(ctx); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdPrev(a *App, ctx context.Context, args []string) error {
	if err := a.dash.PrevPage(ctx); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdPage(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"page <n>"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return usageError{"page <n>"}
	}
	if err := a.dash.GoToPage(ctx, n-1); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdTree(a *App, ctx context.Context, args []string) error {
	a.renderTree(a.dash.Snapshot().Tree)
	return nil
}

func cmdSearch(a *App, ctx context.Context, args []string) error {
	if err := a.dash.Search(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	a.renderFolder(a.dash.Snapshot())
	return nil
}

func cmdSearchFolders(a *App, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError{"fsearch <query>"}
	}
	found, err := a.dash.SearchFolders(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(a.out, "No folders found")
		return nil
	}
	a.renderFolders(found)
	return nil
}

func cmdMkdir(a *App, ctx context.Context, args []string) error {
	f, err := a.dash.CreateFolder(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created folder %s (id %s)\n", f.Name, f.ID)
	return nil
}

func cmdRmdir(a *App, ctx context.Context, args []string) error {
	const usage = "rmdir <id> [-r]"
	if len(args) < 1 || len(args) > 2 {
		return usageError{usage}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{usage}
	}
	recursive := false
	if len(args) == 2 {
		if args[1] != "-r" {
			return usageError{usage}
		}
		recursive = true
	}
	if err := a.dash.DeleteFolder(ctx, id, recursive); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Folder deleted")
	return nil
}

func cmdRenameDir(a *App, ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError{"renamedir <id> <name>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"renamedir <id> <name>"}
	}
	if err := a.dash.RenameFolder(ctx, id, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Folder renamed")
	return nil
}

func cmdMoveDir(a *App, ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError{"mvdir <id> <target|/>"}
	}
	id, ok := parseID(args[0])
	target, ok2 := parseTarget(args[1])
	if !ok || !ok2 {
		return usageError{"mvdir <id> <target|/>"}
	}
	if err := a.dash.MoveFolder(ctx, id, target); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Folder moved")
	return nil
}

func cmdFolderInfo(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"folder <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"folder <id>"}
	}
	f, err := a.dash.FolderInfo(ctx, id)
	if err != nil {
		return err
	}
	a.renderFolderInfo(f)
	return nil
}

func cmdUpload(a *App, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError{"upload <path>"}
	}
	lf, err := upload.FromPath(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.upload.Choose(lf); err != nil {
		return err
	}
	f, err := a.upload.Upload(ctx, a.dash.Snapshot().CurrentFolder)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (id %s, %s)\n", f.FileName, f.ID, formatSize(f.FileSize))
	return nil
}

func cmdInfo(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"info <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"info <id>"}
	}
	f, err := a.dash.FileInfo(ctx, id)
	if err != nil {
		return err
	}
	a.renderFileInfo(f)
	return nil
}

func cmdRename(a *App, ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError{"rename <id> <name>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"rename <id> <name>"}
	}
	if err := a.dash.RenameFile(ctx, id, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "File renamed")
	return nil
}

func cmdMove(a *App, ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError{"mv <id> <target|/>"}
	}
	id, ok := parseID(args[0])
	target, ok2 := parseTarget(args[1])
	if !ok || !ok2 {
		return usageError{"mv <id> <target|/>"}
	}
	if err := a.dash.MoveFile(ctx, id, target); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "File moved")
	return nil
}

func cmdRemove(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"rm <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"rm <id>"}
	}
	if err := a.dash.DeleteFile(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "File deleted")
	return nil
}

func cmdPurge(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"purge <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"purge <id>"}
	}
	if err := a.dash.PermanentDeleteFile(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "File permanently deleted")
	return nil
}

func cmdShare(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"share <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"share <id>"}
	}
	link, err := a.dash.ShareFile(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Public link:", link)
	return nil
}

func cmdUnshare(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"unshare <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"unshare <id>"}
	}
	if err := a.dash.UnshareFile(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Public link revoked")
	return nil
}

func cmdDownload(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"download <id>"}
	}
	id, ok := parseID(args[0])
	if !ok {
		return usageError{"download <id>"}
	}
	name, err := a.fileName(ctx, id)
	if err != nil {
		return err
	}
	link, err := a.dash.DownloadURL(ctx, id)
	if err != nil {
		return err
	}
	return a.save(ctx, link.DownloadURL, name)
}

// fileName prefers the listing already on screen over a metadata call.
func (a *App) fileName(ctx context.Context, id models.ID) (string, error) {
	for _, f := range a.dash.Snapshot().Files {
		if f.ID == id {
			return f.FileName, nil
		}
	}
	f, err := a.dash.FileInfo(ctx, id)
	if err != nil {
		return "", err
	}
	return f.FileName, nil
}

func cmdSelect(a *App, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError{"select <id>..."}
	}
	ids := make([]models.ID, 0, len(args))
	for _, s := range args {
		id, ok := parseID(s)
		if !ok {
			return usageError{"select <id>..."}
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		a.dash.Toggle(id)
	}
	fmt.Fprintf(a.out, "%d file(s) selected\n", a.dash.Snapshot().Selection.Len())
	return nil
}

func cmdSelectPage(a *App, ctx context.Context, args []string) error {
	fmt.Fprintf(a.out, "%d file(s) selected\n", a.dash.SelectPage())
	return nil
}

func cmdSelectAll(a *App, ctx context.Context, args []string) error {
	n, err := a.dash.SelectAllRecords(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d file(s) selected\n", n)
	return nil
}

func cmdClear(a *App, ctx context.Context, args []string) error {
	a.dash.ClearSelection()
	fmt.Fprintln(a.out, "Selection cleared")
	return nil
}

func cmdSelected(a *App, ctx context.Context, args []string) error {
	ids := a.dash.Snapshot().Selection.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "Nothing selected")
		return nil
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	fmt.Fprintf(a.out, "%d selected: %s\n", len(ids), strings.Join(parts, ", "))
	return nil
}

func cmdBulkDelete(a *App, ctx context.Context, args []string) error {
	n, err := a.dash.BulkDelete(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d file(s) deleted\n", n)
	return nil
}

func cmdBulkMove(a *App, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"bulkmv <target|/>"}
	}
	target, ok := parseTarget(args[0])
	if !ok {
		return usageError{"bulkmv <target|/>"}
	}
	n, err := a.dash.BulkMove(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d file(s) moved\n", n)
	return nil
}

func cmdStorage(a *App, ctx context.Context, args []string) error {
	if err := a.dash.Refresh(ctx); err != nil {
		return err
	}
	a.renderStorage(a.dash.Snapshot().Storage)
	return nil
}
