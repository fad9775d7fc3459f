package plugins

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/object-storage/s3"
)

var ErrUnsupported = errors.New("Unsupported")

var provider = make(map[string]core.SetupFunc)

func RegisterProvider(key string, p core.Plugins) {
	provider[key] = func() core.Plugins {
		return p
	}
}

// Setup 按运行模式安装插件, 未注册的模式直接 panic
func Setup(install func(p core.Plugins), mode string) {
	setup, ok := provider[mode]
	if !ok {
		panic("Setup mode not found: " + mode)
	}
	install(setup())
}

// storageDrivers 未列出的 driver 一律降级为 NoneFileStorage
var storageDrivers = map[string]func(cfg core.ObjectStorageDriver) core.FileStorage{
	"s3": func(cfg core.ObjectStorageDriver) core.FileStorage {
		if cfg.S3 == nil {
			panic("object_storage.s3 is required when driver is s3")
		}
		c := cfg.S3
		return &S3FileStorage{
			StaticDomain: cfg.StaticDomain,
			S3:           s3.NewS3Client(c.Endpoint, c.Region, c.Bucket, c.AccessKey, c.SecretKey, s3.WithPathStyle(c.UsePathStyle)),
		}
	},
	"local": func(cfg core.ObjectStorageDriver) core.FileStorage {
		return &LocalFileStorage{StaticDomain: cfg.StaticDomain, Root: cfg.LocalRoot}
	},
}

func SetupObjectStorage(cfg core.ObjectStorageDriver) core.FileStorage {
	if newStorage, ok := storageDrivers[strings.ToLower(cfg.Driver)]; ok {
		return newStorage(cfg)
	}
	return &NoneFileStorage{}
}

// NoneFileStorage 未配置存储时使用, 所有写操作返回 ErrUnsupported
type NoneFileStorage struct{}

func (*NoneFileStorage) GetStaticDomain() string { return "" }

func (*NoneFileStorage) GenGetObjectPreSignURL(string) (string, error) { return "", ErrUnsupported }

func (*NoneFileStorage) GenUploadFileMeta(string, int64) (core.UploadFileMeta, error) {
	return core.UploadFileMeta{}, ErrUnsupported
}

func (*NoneFileStorage) SaveFile(context.Context, string, []byte) error { return ErrUnsupported }

func (*NoneFileStorage) DeleteFile(context.Context, string) error { return ErrUnsupported }

// LocalFileStorage 文件写入 Root 目录, 由静态域名对外提供访问
type LocalFileStorage struct {
	StaticDomain string
	Root         string
}

func (lfs *LocalFileStorage) GetStaticDomain() string {
	return lfs.StaticDomain
}

// GenUploadFileMeta 本地存储不支持客户端直传, 由服务端接收文件
func (lfs *LocalFileStorage) GenUploadFileMeta(fullPath string, _ int64) (core.UploadFileMeta, error) {
	return core.UploadFileMeta{
		FullPath: fullPath,
		Domain:   lfs.StaticDomain,
		Status:   "server_upload",
	}, nil
}

// resolve 清理后的路径始终位于 Root 下
func (lfs *LocalFileStorage) resolve(fullPath string) (string, error) {
	if strings.TrimSpace(fullPath) == "" {
		return "", errors.New("empty file path")
	}
	return filepath.Join(lfs.Root, filepath.FromSlash(filepath.Clean("/"+fullPath))), nil
}

func (lfs *LocalFileStorage) SaveFile(_ context.Context, fullPath string, content []byte) error {
	p, err := lfs.resolve(fullPath)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err = os.WriteFile(p, content, 0o644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// DeleteFile 文件不存在时视为成功
func (lfs *LocalFileStorage) DeleteFile(_ context.Context, fullFilePath string) error {
	p, err := lfs.resolve(fullFilePath)
	if err != nil {
		return err
	}
	if err = os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (lfs *LocalFileStorage) GenGetObjectPreSignURL(path string) (string, error) {
	return path, nil
}

type S3FileStorage struct {
	StaticDomain string
	*s3.S3
}

func (fs *S3FileStorage) GetStaticDomain() string {
	return fs.StaticDomain
}

// GenUploadFileMeta 返回客户端直传用的预签名地址
func (fs *S3FileStorage) GenUploadFileMeta(fullPath string, contentLength int64) (core.UploadFileMeta, error) {
	endpoint, err := fs.S3.GenClientUploadKey(fullPath, contentLength)
	if err != nil {
		return core.UploadFileMeta{}, err
	}
	return core.UploadFileMeta{
		UploadEndpoint: endpoint,
		FullPath:       fullPath,
		Domain:         fs.StaticDomain,
		Status:         "client_upload",
	}, nil
}

func (fs *S3FileStorage) SaveFile(ctx context.Context, fullPath string, content []byte) error {
	return fs.UploadBytes(ctx, fullPath, content)
}

func (fs *S3FileStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	return fs.Delete(ctx, fullFilePath)
}

// GenGetObjectPreSignURL 支持完整 url 或对象路径
func (fs *S3FileStorage) GenGetObjectPreSignURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	key, err := url.QueryUnescape(u.RequestURI())
	if err != nil {
		return "", err
	}
	return fs.S3.GenGetObjectPreSignURL(key)
}
