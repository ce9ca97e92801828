package repository

import "gorm.io/gorm"

// notInScope 构造 "column NOT IN (ids)" 条件
// ids 为空时表示本轮一个都没见到，匹配全部记录
func notInScope(column string, ids []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(ids) == 0 {
			return db.Where("1 = 1")
		}
		return db.Where(column+" NOT IN ?", ids)
	}
}
