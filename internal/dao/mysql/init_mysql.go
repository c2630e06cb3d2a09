// Package mysql owns the database connection and the repository layer
// built on top of it.
package mysql

import (
	"fmt"

	"beacon_chat_server/internal/config"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init connects to MySQL, migrates the schema and returns the
// repository aggregate. Fatal on any failure: the process is useless
// without its store.
func Init() *repository.Repositories {
	conf := config.GetConfig()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	if err := Migrate(db); err != nil {
		zap.L().Fatal(err.Error())
	}

	return repository.NewRepositories(db)
}

// Migrate applies the schema. Shared with the sqlite test fixtures.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserInfo{},
		&model.Chat{},
		&model.Community{},
		&model.ChatMember{},
		&model.CommunityMember{},
		&model.Message{},
		&model.Reaction{},
		&model.ReadReceipt{},
		&model.PinnedMessage{},
		&model.Invite{},
		&model.Contact{},
		&model.DeviceToken{},
	)
}
