package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/protocol"
)

const drivePageSize = 200

// ListFiles returns every entry of a Drive folder, following pagination.
// An empty folder token lists the app's root.
func (c *Client) ListFiles(ctx context.Context, folderToken string) ([]protocol.DriveFile, error) {
	// Wiki node tokens are not Drive folders; the API wants the root instead.
	if strings.HasPrefix(folderToken, "nod") {
		folderToken = ""
	}

	var files []protocol.DriveFile
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(drivePageSize))
		if folderToken != "" {
			q.Set("folder_token", folderToken)
		}
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var page protocol.DriveFileList
		if err := c.call(ctx, "list files", http.MethodGet, "/drive/v1/files", q, nil, &page); err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		if !page.HasMore || page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateFolder creates a folder under parentToken and returns its token.
func (c *Client) CreateFolder(ctx context.Context, name, parentToken string) (string, error) {
	var data protocol.CreateFolderData
	err := c.call(ctx, "create folder", http.MethodPost, "/drive/v1/files/create_folder", nil,
		protocol.CreateFolderRequest{Name: name, FolderToken: parentToken}, &data)
	if err != nil {
		return "", err
	}
	return data.Token, nil
}

// CreateSpreadsheet creates a spreadsheet in folderToken and returns its token.
func (c *Client) CreateSpreadsheet(ctx context.Context, title, folderToken string) (string, error) {
	var data protocol.CreateSpreadsheetData
	err := c.call(ctx, "create spreadsheet", http.MethodPost, "/sheets/v3/spreadsheets", nil,
		protocol.CreateSpreadsheetRequest{Title: title, FolderToken: folderToken}, &data)
	if err != nil {
		return "", err
	}
	return data.Spreadsheet.Token, nil
}

// CreateBitable creates a multi-dimensional table in folderToken and returns its app token.
func (c *Client) CreateBitable(ctx context.Context, name, folderToken string) (string, error) {
	var data protocol.CreateBitableData
	err := c.call(ctx, "create bitable", http.MethodPost, "/bitable/v1/apps", nil,
		protocol.CreateBitableRequest{Name: name, FolderToken: folderToken}, &data)
	if err != nil {
		return "", err
	}
	return data.App.AppToken, nil
}

// MoveFile moves a file or folder into targetFolder.
func (c *Client) MoveFile(ctx context.Context, token, fileType, targetFolder string) error {
	return c.call(ctx, "move file", http.MethodPost, "/drive/v1/files/"+url.PathEscape(token)+"/move", nil,
		protocol.MoveFileRequest{Type: fileType, FolderToken: targetFolder}, nil)
}

// RenameFile renames a file or folder.
func (c *Client) RenameFile(ctx context.Context, token, fileType, newName string) error {
	return c.call(ctx, "rename file", http.MethodPatch, "/drive/v1/files/"+url.PathEscape(token), nil,
		protocol.RenameFileRequest{Name: newName, Type: fileType}, nil)
}

// DeleteFile deletes a file or folder.
func (c *Client) DeleteFile(ctx context.Context, token, fileType string) error {
	q := url.Values{}
	q.Set("type", fileType)
	return c.call(ctx, "delete file", http.MethodDelete, "/drive/v1/files/"+url.PathEscape(token), q, nil, nil)
}

var drivePathByType = map[string]string{
	models.TypeFolder:  "drive/folder",
	models.TypeSheet:   "sheets",
	models.TypeBitable: "base",
	models.TypeDoc:     "docs",
	models.TypeDocx:    "docx",
	models.TypeFile:    "file",
}

// FileURL returns the web link for a Drive entry.
func (c *Client) FileURL(token, fileType string) (string, error) {
	host, err := c.webHost()
	if err != nil {
		return "", err
	}
	p, ok := drivePathByType[fileType]
	if !ok {
		p = "file"
	}
	return fmt.Sprintf("https://%s/%s/%s", host, p, token), nil
}
